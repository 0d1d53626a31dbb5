package image

type ImageSummary struct {
	ImageId     string   `json:"imageId"`
	Name        string   `json:"name"`
	Packages    []string `json:"packages,omitempty"`
	ManifestRef string   `json:"manifestRef,omitempty"`
	Account     string   `json:"account"`
	AssembledAt string   `json:"assembledAt"`
}
