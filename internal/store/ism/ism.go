package ism

import (
	"fmt"
	"time"
)

func NewIsmManager(ismStore *IsmStore) *IsmManager {
	return &IsmManager{
		ismStore: ismStore,
	}
}

type IsmManager struct {
	ismStore *IsmStore
}

func (m *IsmManager) StoreImage(imageId string, name string, packages []string, manifestRef string, account string) error {
	return m.ismStore.withLock(func(st *ImageState) error {
		st.Images[imageId] = ImageInfo{
			ImageId:     imageId,
			Name:        name,
			Packages:    packages,
			ManifestRef: manifestRef,
			Account:     account,
			AssembledAt: time.Now(),
		}
		return nil
	})
}

func (m *IsmManager) GetImageList() ([]ImageInfo, error) {
	var imageList []ImageInfo
	err := m.ismStore.withLock(func(st *ImageState) error {
		for _, i := range st.Images {
			imageList = append(imageList, i)
		}
		return nil
	})
	return imageList, err
}

func (m *IsmManager) GetImageById(imageId string) (ImageInfo, error) {
	var imageInfo ImageInfo
	err := m.ismStore.withLock(func(st *ImageState) error {
		for _, i := range st.Images {
			if i.ImageId != imageId {
				continue
			}
			imageInfo = i
			return nil
		}
		return fmt.Errorf("image: %s not found", imageId)
	})
	return imageInfo, err
}
