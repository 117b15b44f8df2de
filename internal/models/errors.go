package models

import "errors"

var (
	ErrUnauthenticated     = errors.New("требуется авторизация")
	ErrForbidden           = errors.New("доступ запрещен")
	ErrNotFound            = errors.New("не найдено")
	ErrDuplicateSubmission = errors.New("опрос уже пройден")
	ErrIncompleteAnswers   = errors.New("ответы даны не на все вопросы")
	ErrInvalidAnswer       = errors.New("недопустимый вариант ответа")
	ErrEmailTaken          = errors.New("email уже используется")
	ErrInvalidCredentials  = errors.New("неверный email или пароль")
	ErrTransport           = errors.New("ошибка хранилища")
)
