package service

import "github.com/templui/filesmanager/internal/model"

// CanRead reports whether user may see file. A nil user is anonymous.
func CanRead(user *model.User, file *model.File) bool {
	return file.IsPublic || CanWrite(user, file)
}

// CanWrite reports whether user owns file.
func CanWrite(user *model.User, file *model.File) bool {
	return user != nil && file.UserID == user.ID
}
