package ism

type IsmStoreHandler interface {
	SetImageState() error
}

type IsmHandler interface {
	StoreImage(imageId string, name string, packages []string, manifestRef string, account string) error
	GetImageList() ([]ImageInfo, error)
	GetImageById(imageId string) (ImageInfo, error)
}
