package controllers

import (
	"net/http"
	"strings"

	"cinara/app"

	"github.com/gin-gonic/gin"
)

type StorageController struct{ *Srv }

func GetStorageController(s *Srv) *StorageController { return &StorageController{Srv: s} }

const (
	signExpiryMin     = 60
	signExpiryMax     = 180
	signExpiryDefault = 120
)

// POST /storage/sign
//
// Signing is not implemented yet; only the request contract is enforced so
// clients can be built against it. Always answers 501.
func (sc *StorageController) Sign(c *gin.Context) {
	var in struct {
		Bucket    string `json:"bucket"`
		Path      string `json:"path"`
		ExpiresIn *int   `json:"expiresIn"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Bucket == "" || in.Path == "" {
		c.JSON(http.StatusBadRequest, app.H{
			"error":   "Invalid payload",
			"message": "bucket and path are required",
		})
		return
	}

	if !sc.allowedBucket(in.Bucket) {
		c.JSON(http.StatusBadRequest, app.H{
			"error":   "Invalid bucket",
			"message": "bucket must be one of: " + strings.Join(sc.Cfg.StorageBuckets, ", "),
		})
		return
	}

	if strings.TrimSpace(in.Path) == "" {
		c.JSON(http.StatusBadRequest, app.H{
			"error":   "Invalid path",
			"message": "path must not be empty",
		})
		return
	}

	expiresIn := signExpiryDefault
	if in.ExpiresIn != nil {
		expiresIn = *in.ExpiresIn
		if expiresIn < signExpiryMin {
			expiresIn = signExpiryMin
		}
		if expiresIn > signExpiryMax {
			expiresIn = signExpiryMax
		}
	}

	// TODO: check workspace access rights before issuing a signed URL.
	c.JSON(http.StatusNotImplemented, app.H{
		"error":   "Not implemented",
		"message": "URL signing is not available yet",
		"request": app.H{
			"bucket":    in.Bucket,
			"path":      in.Path,
			"expiresIn": expiresIn,
		},
	})
}

func (sc *StorageController) allowedBucket(bucket string) bool {
	for _, b := range sc.Cfg.StorageBuckets {
		if bucket == b {
			return true
		}
	}
	return false
}
