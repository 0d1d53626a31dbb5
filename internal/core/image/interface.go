package image

import "steward/internal/store/ism"

type ImageServiceHandler interface {
	Assemble(assembleParameter AssembleModel) (string, error)
	GetImageList() ([]ism.ImageInfo, error)
}
