package models

import "time"

// ItemStatus tracks the lifecycle of a single image's analysis.
// Transitions are pending -> success or pending -> failed, both terminal.
type ItemStatus string

const (
	StatusPending ItemStatus = "pending"
	StatusSuccess ItemStatus = "success"
	StatusFailed  ItemStatus = "failed"
)

// Record is the structured result of analyzing one image.
type Record struct {
	Title       string `json:"title" yaml:"title"`
	Buildings   string `json:"buildings" yaml:"buildings"`
	Description string `json:"description" yaml:"description"`
}

// ImageItem represents one uploaded image and its analysis outcome.
// Data holds the original JPEG bytes; it is written once at upload time
// and only read afterwards, so preview and model submission never
// interfere with each other.
type ImageItem struct {
	Index       int        `json:"index"`
	Filename    string     `json:"filename"`
	ImageURL    string     `json:"image_url"`
	ImageWidth  int        `json:"image_width"`
	ImageHeight int        `json:"image_height"`
	Size        int        `json:"size"`
	Status      ItemStatus `json:"status"`
	Record      *Record    `json:"record,omitempty"`
	Error       string     `json:"error,omitempty"`
	ErrorKind   string     `json:"error_kind,omitempty"`

	Data []byte `json:"-"`
}

// AnalysisBatch represents one upload of images awaiting or holding
// analysis results. Items keep upload order by index.
type AnalysisBatch struct {
	ID        string      `json:"id"`
	Items     []ImageItem `json:"items"`
	Provider  string      `json:"provider,omitempty"`
	Model     string      `json:"model,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
