package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"github.com/scriptgen-ra/scriptgen/common"
	"github.com/scriptgen-ra/scriptgen/common/ctxkey"
	"github.com/scriptgen-ra/scriptgen/dto"
	"github.com/scriptgen-ra/scriptgen/middleware"
	"github.com/scriptgen-ra/scriptgen/model"
)

func Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request"))
		return
	}
	if err := common.Validate.Struct(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid input"))
		return
	}
	if model.IsUsernameAlreadyTaken(req.Username) {
		middleware.AbortWithError(c, http.StatusConflict, errors.New("username is already taken"))
		return
	}
	if model.IsEmailAlreadyTaken(req.Email) {
		middleware.AbortWithError(c, http.StatusConflict, errors.New("email is already registered"))
		return
	}

	user := model.User{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.RoleCommonUser,
		Status:    model.UserStatusEnabled,
	}
	if err := user.Insert(c.Request.Context()); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "registration succeeded",
		Token:   token,
		User:    profileOf(&user),
	})
}

func Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request"))
		return
	}

	user := model.User{
		Username: req.Identifier,
		Password: req.Password,
	}
	if err := user.ValidateAndFill(); err != nil {
		middleware.AbortWithError(c, http.StatusUnauthorized, err)
		return
	}

	session := sessions.Default(c)
	session.Set("id", user.Id)
	session.Set("username", user.Username)
	session.Set("role", user.Role)
	if err := session.Save(); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError,
			errors.Wrap(err, "save session"))
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "login succeeded",
		Token:   token,
		User:    profileOf(&user),
	})
}

func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError,
			errors.Wrap(err, "save session"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "logged out",
	})
}

func GetSelf(c *gin.Context) {
	user, err := model.GetUserById(c.GetInt(ctxkey.Id))
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    profileOf(user),
	})
}

func UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request"))
		return
	}
	if err := common.Validate.Struct(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid input"))
		return
	}

	user, err := model.GetUserById(c.GetInt(ctxkey.Id))
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	if req.Email != "" && req.Email != user.Email {
		if model.IsEmailAlreadyTaken(req.Email) {
			middleware.AbortWithError(c, http.StatusConflict, errors.New("email is already registered"))
			return
		}
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	updatePassword := req.Password != ""
	if updatePassword {
		user.Password = req.Password
	}
	if err := user.Update(updatePassword); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "profile updated",
		"user":    profileOf(user),
	})
}

func profileOf(user *model.User) dto.UserProfile {
	var profile dto.UserProfile
	_ = copier.Copy(&profile, user)
	return profile
}
