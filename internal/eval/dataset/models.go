package dataset

// LabeledImage is one record of a labeled evaluation dataset: a JPEG on
// disk plus the expected extraction fields.
type LabeledImage struct {
	ImagePath   string `json:"image_path" parquet:"image_path"`
	Title       string `json:"title" parquet:"title"`
	Buildings   string `json:"buildings" parquet:"buildings"`
	Description string `json:"description" parquet:"description"`
}
