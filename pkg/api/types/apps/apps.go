// Package apps holds wire types about applications and deployments.
package apps

// Detail is the server-side record of an application.
type Detail struct {
	// AppID is the identity the backend assigned to the application.
	AppID string `json:"appId"`

	Name string `json:"name,omitempty"`
}

func (d Detail) Equal(o Detail) bool {
	return d == o
}

// Deployment is a named, durable binding of an application identity.
//
// A lookup for a name never deployed yields a Deployment with empty AppID;
// that is not an error on the wire.
type Deployment struct {
	AppID     string `json:"appId,omitempty"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`

	// LastLogCursor is the cursor of the last log entry the backend
	// retained for this deployment.
	LastLogCursor string `json:"lastLogCursor,omitempty"`
}

func (d Deployment) Equal(o Deployment) bool {
	return d == o
}

// ObjectMap is the published tag-to-identity mapping of an application.
type ObjectMap struct {
	ObjectIDs map[string]string `json:"objectIds"`

	LastLogCursor string `json:"lastLogCursor,omitempty"`
}
