package storage

import "errors"

// ErrLinkNotFound возвращается, когда ссылка не найдена в хранилище
var ErrLinkNotFound = errors.New("link not found")

// ErrSlugConflict возвращается, когда слаг уже занят другой ссылкой
var ErrSlugConflict = errors.New("slug conflict")

// ErrUserNotFound возвращается, когда пользователь не найден
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists возвращается при попытке создать пользователя с занятым именем
var ErrUserExists = errors.New("user already exists")
