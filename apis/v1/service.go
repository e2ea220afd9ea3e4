package v1

// Service describes one deployable color of the greeting application.
type Service struct {
	Kind     string      `yaml:"kind" json:"kind" validate:"required,eq=Service"`
	Metadata Metadata    `yaml:"metadata" json:"metadata"`
	Spec     ServiceSpec `yaml:"spec" json:"spec"`
}

type Metadata struct {
	// Name is reported as "service" by the health endpoint.
	Name string `yaml:"name" json:"name" validate:"required" template:""`
}

type ServiceSpec struct {
	// Version is reported by the health endpoint and shown on the HTML page.
	Version string `yaml:"version" json:"version" validate:"required" template:""`

	// Greeting is the text served at "/".
	Greeting string `yaml:"greeting" json:"greeting" validate:"required" template:""`

	// Listen is the address the service binds to (default ":5000").
	Listen string `yaml:"listen,omitempty" json:"listen,omitempty" template:""`

	// Page configures how the greeting is rendered (default: plain text).
	Page *PageSpec `yaml:"page,omitempty" json:"page,omitempty"`

	// Checks must all pass for the health endpoint to report healthy.
	Checks []CheckSpec `yaml:"checks,omitempty" json:"checks,omitempty" validate:"dive"`
}

type PageSpec struct {
	// Format is "text" or "html".
	Format string `yaml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=text html"`

	// Title is the HTML document title.
	Title string `yaml:"title,omitempty" json:"title,omitempty" template:""`

	// AppLabel is shown above the version on the HTML page, e.g. "APP 1".
	AppLabel string `yaml:"app_label,omitempty" json:"app_label,omitempty" template:""`
}

// CheckSpec is a readiness check. The service is unhealthy while File does not exist.
type CheckSpec struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	File string `yaml:"file" json:"file" validate:"required" template:""`
}
