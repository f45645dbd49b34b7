package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/famfit/models"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

// FamilyController manages families and their members.
type FamilyController struct {
	store  store.Store
	logger *zap.Logger
}

// NewFamilyController creates a FamilyController.
func NewFamilyController(s store.Store, logger *zap.Logger) *FamilyController {
	return &FamilyController{store: s, logger: orNop(logger)}
}

// CreateFamily stores a new family.
func (f *FamilyController) CreateFamily(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=128"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	name := utils.SanitizeText(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name cannot be empty")
		return
	}
	family := models.Family{Name: name}
	if err := f.store.CreateFamily(ctx, &family); err != nil {
		handleStoreErr(ctx, f.logger, err, "create family")
		return
	}
	utils.Created(ctx, family)
}

// ListFamilies returns all families.
func (f *FamilyController) ListFamilies(ctx *gin.Context) {
	families, err := f.store.ListFamilies(ctx)
	if err != nil {
		handleStoreErr(ctx, f.logger, err, "list families")
		return
	}
	utils.Success(ctx, families)
}

// GetFamily returns one family.
func (f *FamilyController) GetFamily(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	family, err := f.store.GetFamily(ctx, id)
	if err != nil {
		handleStoreErr(ctx, f.logger, err, "get family")
		return
	}
	utils.Success(ctx, family)
}

// ListFamilyUsers returns the members of a family. An unknown family is a 404.
func (f *FamilyController) ListFamilyUsers(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if _, err := f.store.GetFamily(ctx, id); err != nil {
		handleStoreErr(ctx, f.logger, err, "get family")
		return
	}
	users, err := f.store.ListUsersByFamily(ctx, id)
	if err != nil {
		handleStoreErr(ctx, f.logger, err, "list family users")
		return
	}
	utils.Success(ctx, users)
}
