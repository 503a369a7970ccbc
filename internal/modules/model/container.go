package model

// Container type names. Always singular; the collection a type lives in is
// named by appending "s", so a type string must never itself end in "s".
const (
	ContainerGroup       = "group"
	ContainerProject     = "project"
	ContainerSession     = "session"
	ContainerAcquisition = "acquisition"
)

// ContainerDoc is the view of a container the permission layer needs,
// independent of which collection it came from.
type ContainerDoc struct {
	Type        string       `json:"type"`
	ID          string       `json:"_id"`
	Label       string       `json:"label,omitempty"`
	Permissions []Permission `json:"permissions"`
	Public      bool         `json:"public"`
}
