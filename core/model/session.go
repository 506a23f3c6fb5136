package model

// Role identifies what kind of party is acting.
type Role string

const (
	RoleDispatcher Role = "dispatcher"
	RoleBroker     Role = "broker"
	RoleCarrier    Role = "carrier"
	RoleAdmin      Role = "admin"
)

// Session identifies the acting party of a command. It replaces hard-coded
// "current user" identifiers; authentication happens outside the ledger.
type Session struct {
	ActorID   string `json:"actor_id"`
	Role      Role   `json:"role"`
	CarrierID string `json:"carrier_id,omitempty"`
}

// SystemSession is used for commands issued by the service itself, such as
// the periodic bookability sweep.
var SystemSession = Session{ActorID: "system", Role: RoleAdmin}

// Actor returns the acting id, falling back to "anonymous".
func (s Session) Actor() string {
	if s.ActorID == "" {
		return "anonymous"
	}
	return s.ActorID
}
