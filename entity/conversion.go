package entity

import "context"

type Audio struct {
	Ext  string
	Body []byte
}

type ConversionResult struct {
	Audio Audio
	Size  int64
}

type ConversionUsecase interface {
	Convert(ctx context.Context, audio Audio) (*ConversionResult, error)
}
