package model

// PlanItem is what a batch run would do for one file
type PlanItem struct {
	Repo         string `json:"repo" yaml:"repo"`
	Filename     string `json:"filename" yaml:"filename"`
	DownloadPath string `json:"download_path" yaml:"download_path"` // Local path the download lands at
	ExtractPath  string `json:"extract_path,omitempty" yaml:"extract_path,omitempty"` // Decompressed output; empty when the file is not a compressed stream
}
