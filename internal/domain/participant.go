package domain

// Participant is an active member of the room. LastStatus is the unix
// timestamp in milliseconds of the last heartbeat; joining counts as one.
type Participant struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

// JoinRequest is the payload for registering a participant.
type JoinRequest struct {
	Name string `json:"name" validate:"required"`
}
