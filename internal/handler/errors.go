package handler

import (
	"errors"

	"coderoom/internal/app/tree"
	"coderoom/internal/pkg/errs"
	"coderoom/internal/pkg/logx"
)

// treeError maps a tree package error onto the application error codes.
func treeError(err error, path string) *errs.CustomError {
	switch {
	case errors.Is(err, tree.ErrNoTree):
		return errs.NewError(errs.ErrRoomNotFound)
	case errors.Is(err, tree.ErrNotFound):
		return errs.NewError(errs.ErrPathNotFound)
	case errors.Is(err, tree.ErrAlreadyExists):
		return errs.NewError(errs.ErrPathExists, path)
	case errors.Is(err, tree.ErrInvalidPath):
		return errs.NewError(errs.ErrInvalidPath)
	case errors.Is(err, tree.ErrInvalidName), errors.Is(err, tree.ErrMalformed):
		logx.Error(err, "Stored file tree failed sanitization")
		return errs.NewError(errs.ErrTreeCorrupted)
	default:
		return errs.NewError(errs.ErrUnknown, err)
	}
}
