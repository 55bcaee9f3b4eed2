// Package objects holds wire types describing objects to be created
// server-side.
package objects

// Manifest is the declarative payload for creating one object.
//
// Kind selects which of the optional sections is meaningful.
type Manifest struct {
	Kind string `json:"kind"`

	Image    *Image    `json:"image,omitempty"`
	Function *Function `json:"function,omitempty"`
	Secret   *Secret   `json:"secret,omitempty"`
	Mount    *Mount    `json:"mount,omitempty"`
	Schedule *Schedule `json:"schedule,omitempty"`
	Queue    *Queue    `json:"queue,omitempty"`
}

type Image struct {
	// Reference is a normalized image reference, e.g.
	// "index.docker.io/library/debian:bookworm-slim".
	Reference string `json:"reference"`
}

type Secret struct {
	Env map[string]string `json:"env"`
}

type Mount struct {
	LocalPath  string `json:"localPath"`
	RemotePath string `json:"remotePath"`
}

type Schedule struct {
	// exactly one of Period or Cron is set
	Period string `json:"period,omitempty"`
	Cron   string `json:"cron,omitempty"`
}

type Queue struct{}

type Function struct {
	Name string `json:"name"`

	// identities of objects this function depends on, resolved before the
	// function itself is created
	ImageID    string   `json:"imageId"`
	SecretIDs  []string `json:"secretIds,omitempty"`
	MountIDs   []string `json:"mountIds,omitempty"`
	ScheduleID string   `json:"scheduleId,omitempty"`

	GPU        bool              `json:"gpu,omitempty"`
	RateLimit  *RateLimit        `json:"rateLimit,omitempty"`
	Resources  map[string]string `json:"resources,omitempty"`
	Generator  bool              `json:"generator,omitempty"`
	Serialized bool              `json:"serialized,omitempty"`

	Webhook *WebhookConfig `json:"webhook,omitempty"`
}

type RateLimit struct {
	Limit  int    `json:"limit"`
	Window string `json:"window"`
}

type WebhookConfig struct {
	Method          string `json:"method"`
	WaitForResponse bool   `json:"waitForResponse"`
}
