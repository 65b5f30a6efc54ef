package photo

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	midsec "github.com/jjt256723/couple-space-app/middleware/security"
	photomodel "github.com/jjt256723/couple-space-app/module/photo/model"
	usermodel "github.com/jjt256723/couple-space-app/module/user/model"
	"github.com/jjt256723/couple-space-app/service/storage/files"
	"github.com/jjt256723/couple-space-app/tools/errs"
	"github.com/jjt256723/couple-space-app/tools/ids"
)

// Handlers 照片模块需要文件存储实例，和其它模块不同走了结构体。
type Handlers struct {
	Files *files.DiskStorage
}

const maxPhotoBytes = 10 << 20 // 10MB

// HandlerUpload multipart 上传：file 字段 + 可选 caption。
func (h *Handlers) HandlerUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail("缺少 file 字段"))
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail("文件过大"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPhotoBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}

	// 雪花ID做存储名，避免同名覆盖
	stored := fmt.Sprintf("%s%s", ids.GenerateString(), filepath.Ext(fileHeader.Filename))
	url, err := h.Files.Save(stored, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}

	var caption *string
	if v := c.PostForm("caption"); v != "" {
		caption = &v
	}

	p, err := photomodel.Create(c.Request.Context(), midsec.UserID(c), fileHeader.Filename, url, nil, caption)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handlers) HandlerList(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx := c.Request.Context()
	u, err := usermodel.GetByID(ctx, midsec.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrUserNotFound)
		return
	}
	if u.CoupleID == nil {
		c.JSON(http.StatusOK, []*photomodel.Photo{})
		return
	}

	list, err := photomodel.ListForCouple(ctx, *u.CoupleID, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	if list == nil {
		list = []*photomodel.Photo{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) HandlerDelete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam)
		return
	}

	ctx := c.Request.Context()
	p, err := photomodel.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	if p.UserID != midsec.UserID(c) {
		c.JSON(http.StatusForbidden, errs.ErrForbidden)
		return
	}

	if err := photomodel.Delete(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	// 磁盘文件清理尽力而为
	_ = h.Files.Delete(p.URL)

	c.Status(http.StatusNoContent)
}
