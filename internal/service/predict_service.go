package service

import (
	"context"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/classifier"
)

// PredictService exposes ad-hoc single-text classification, mostly for
// the frontend's "try it" box.
type PredictService struct {
	cfg *config.MLConfig
}

func NewPredictService(cfg *config.MLConfig) *PredictService {
	return &PredictService{cfg: cfg}
}

// Predict classifies one text. The classifier loads lazily on the first
// call; a load already in flight surfaces as classifier.ErrAlreadyLoading
// so the caller can retry shortly.
func (s *PredictService) Predict(ctx context.Context, req *dto.PredictTextRequest) (*dto.PredictTextResponse, error) {
	c, err := classifier.Load(ctx, s.cfg)
	if err != nil {
		return nil, err
	}

	result, err := c.Classify(ctx, req.Text)
	if err != nil {
		return nil, err
	}

	return &dto.PredictTextResponse{
		Classification:  result.Classification,
		ConfidenceScore: result.Confidence,
		ModelVersion:    result.ModelVersion,
	}, nil
}
