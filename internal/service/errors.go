package service

import "errors"

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrSessionNotFound = errors.New("sync session not found")
	ErrStepTerminal    = errors.New("step already finished")
)
