package image

import (
	"net/http"
	"time"

	apimodel "steward/internal/api/http/utils"
	"steward/internal/store/ism"
	"steward/internal/utils"
)

func NewRequestHandler() *RequestHandler {
	return &RequestHandler{
		ismHandler: ism.NewIsmManager(ism.NewIsmStore(utils.IsmStorePath)),
	}
}

type RequestHandler struct {
	ismHandler ism.IsmHandler
}

// GetImageList godoc
// @Summary list assembled images
// @Description list assembled image records
// @Tags images
// @Produce json
// @Success 200 {object} apimodel.ApiResponse
// @Router /v1/images [get]
func (h *RequestHandler) GetImageList(w http.ResponseWriter, r *http.Request) {
	list, err := h.ismHandler.GetImageList()
	if err != nil {
		apimodel.RespondFail(w, http.StatusInternalServerError, "list failed: "+err.Error(), nil)
		return
	}

	res := make([]ImageSummary, 0, len(list))
	for _, img := range list {
		res = append(res, ImageSummary{
			ImageId:     img.ImageId,
			Name:        img.Name,
			Packages:    img.Packages,
			ManifestRef: img.ManifestRef,
			Account:     img.Account,
			AssembledAt: img.AssembledAt.Format(time.RFC3339),
		})
	}
	apimodel.RespondSuccess(w, http.StatusOK, "image list", res)
}
