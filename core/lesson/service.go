package lesson

import (
	"context"
	"errors"
	"fmt"

	"github.com/viserknight/mtss/core"
)

var (
	// user-facing messages for the gateway's throttling statuses
	ErrRateLimited   = errors.New("the lesson planner is receiving too many requests, please try again in a moment")
	ErrQuotaExceeded = errors.New("the lesson planner is temporarily unavailable, the usage quota has been exhausted")
)

const (
	planSystemPrompt = `You are an experienced curriculum designer.
Produce a complete, classroom-ready lesson plan with the sections:
Objectives, Materials, Introduction, Main Activities, Assessment and Homework.
Write for the requested grade level and keep the plan practical.`

	imageSystemPrompt = `You are a teaching assistant. The user sends a photo of
teaching material (worksheet, textbook page or board) together with an
instruction. Follow the instruction against the image content.`
)

// LessonPlanRequest is the prompt-template input for a generated plan.
type LessonPlanRequest struct {
	Subject  string `json:"subject" validate:"required"`
	Grade    string `json:"grade" validate:"required"`
	Topic    string `json:"topic" validate:"required"`
	Duration string `json:"duration"`
}

func (lr *LessonPlanRequest) Validate() error {
	lr.Subject = core.CleanString(lr.Subject)
	lr.Grade = core.CleanString(lr.Grade)
	lr.Topic = core.CleanString(lr.Topic)
	lr.Duration = core.CleanString(lr.Duration)
	return core.Validate.Struct(lr)
}

// ImageRequest sends teaching material as an image data URL plus an instruction.
type ImageRequest struct {
	ImageDataURL string `json:"image" validate:"required"`
	Instruction  string `json:"instruction" validate:"required"`
}

func (ir *ImageRequest) Validate() error {
	ir.Instruction = core.CleanString(ir.Instruction)
	return core.Validate.Struct(ir)
}

// Service is a stateless proxy: prompt templating in, model-composed text out.
type Service struct {
	aiSvc core.CompletionService
}

func NewService(aiSvc core.CompletionService) *Service {
	return &Service{aiSvc: aiSvc}
}

func (svc *Service) Generate(ctx context.Context, req LessonPlanRequest) (string, error) {
	prompt := fmt.Sprintf("Create a lesson plan.\nSubject: %s\nGrade: %s\nTopic: %s", req.Subject, req.Grade, req.Topic)
	if req.Duration != "" {
		prompt += "\nLesson duration: " + req.Duration
	}

	text, err := svc.aiSvc.Complete(ctx, []core.ChatMessage{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: prompt},
	})
	return text, svc.trapGatewayErr(err)
}

func (svc *Service) GenerateFromImage(ctx context.Context, req ImageRequest) (string, error) {
	content := []map[string]interface{}{
		{"type": "text", "text": req.Instruction},
		{"type": "image_url", "image_url": map[string]string{"url": req.ImageDataURL}},
	}

	text, err := svc.aiSvc.Complete(ctx, []core.ChatMessage{
		{Role: "system", Content: imageSystemPrompt},
		{Role: "user", Content: content},
	})
	return text, svc.trapGatewayErr(err)
}

// trapGatewayErr maps the gateway's throttling sentinels to lesson-planner
// wording; anything else (including AIStatusError) passes through verbatim.
func (svc *Service) trapGatewayErr(err error) error {
	switch err {
	case core.ErrAIRateLimited:
		return ErrRateLimited
	case core.ErrAIQuotaExceeded:
		return ErrQuotaExceeded
	}
	return err
}
