package model

// Permission grants one user an access level on a container. The json field
// names mirror the wire format ingestion agents and clients use.
type Permission struct {
	ID     string `json:"_id"`
	Access string `json:"access"`
}

const (
	AccessAnonymous = "anonymous"
	AccessReadOnly  = "ro"
	AccessReadWrite = "rw"
	AccessAdmin     = "admin"
)

var accessRanks = map[string]int{
	AccessAnonymous: 0,
	AccessReadOnly:  1,
	AccessReadWrite: 2,
	AccessAdmin:     3,
}

// AccessRank returns the ordinal rank of an access level name. Unknown names
// report ok=false and rank nothing.
func AccessRank(name string) (int, bool) {
	rank, ok := accessRanks[name]
	return rank, ok
}
