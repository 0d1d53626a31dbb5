package ism

import "time"

type ImageInfo struct {
	ImageId     string    `json:"imageId"`
	Name        string    `json:"name"`
	Packages    []string  `json:"packages"`
	ManifestRef string    `json:"manifestRef,omitempty"`
	Account     string    `json:"account"`
	AssembledAt time.Time `json:"assembledAt"`
}

type ImageState struct {
	Version string               `json:"version"`
	Images  map[string]ImageInfo `json:"images"`
}
