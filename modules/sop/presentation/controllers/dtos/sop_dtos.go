package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/domain/entities/ppe"
	"github.com/fieldops/sopdesk/modules/sop/services"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

type StepRequest struct {
	ID       *string  `json:"id" validate:"omitempty,uuid"`
	Position int      `json:"position" validate:"min=0"`
	Title    string   `json:"title" validate:"required,max=200"`
	Text     string   `json:"text" validate:"required"`
	ImageRef string   `json:"imageRef"`
	PpeIDs   []string `json:"ppeIds" validate:"dive,uuid"`
}

type HazardRequest struct {
	ID             *string `json:"id" validate:"omitempty,uuid"`
	Name           string  `json:"name" validate:"required,max=200"`
	ControlMeasure string  `json:"controlMeasure" validate:"required"`
	RiskLevel      string  `json:"riskLevel" validate:"required,oneof=low medium high"`
}

type CreateSopRequest struct {
	Reference     string          `json:"reference" validate:"required,max=50"`
	DepartmentID  *string         `json:"departmentId" validate:"omitempty,uuid"`
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description"`
	IsAiGenerated bool            `json:"isAiGenerated"`
	Steps         []StepRequest   `json:"steps" validate:"dive"`
	Hazards       []HazardRequest `json:"hazards" validate:"dive"`
}

type UpdateVersionRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description"`
	Steps       []StepRequest   `json:"steps" validate:"dive"`
	Hazards     []HazardRequest `json:"hazards" validate:"dive"`
}

var errInvalidUUID = serrors.Validation("INVALID_ID", "id must be a valid uuid")

func parseOptionalUUID(v *string) (*uuid.UUID, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return nil, errInvalidUUID
	}
	return &id, nil
}

func toStepInputs(in []StepRequest) ([]services.StepInput, error) {
	out := make([]services.StepInput, 0, len(in))
	for _, s := range in {
		id, err := parseOptionalUUID(s.ID)
		if err != nil {
			return nil, err
		}
		ppeIDs := make([]uuid.UUID, 0, len(s.PpeIDs))
		for _, raw := range s.PpeIDs {
			ppeID, err := uuid.Parse(raw)
			if err != nil {
				return nil, errInvalidUUID
			}
			ppeIDs = append(ppeIDs, ppeID)
		}
		out = append(out, services.StepInput{
			ID:       id,
			Position: s.Position,
			Title:    s.Title,
			Text:     s.Text,
			ImageRef: s.ImageRef,
			PpeIDs:   ppeIDs,
		})
	}
	return out, nil
}

func toHazardInputs(in []HazardRequest) ([]services.HazardInput, error) {
	out := make([]services.HazardInput, 0, len(in))
	for _, h := range in {
		id, err := parseOptionalUUID(h.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, services.HazardInput{
			ID:             id,
			Name:           h.Name,
			ControlMeasure: h.ControlMeasure,
			RiskLevel:      h.RiskLevel,
		})
	}
	return out, nil
}

func (r *CreateSopRequest) ToCommand() (services.CreateSopCommand, error) {
	departmentID, err := parseOptionalUUID(r.DepartmentID)
	if err != nil {
		return services.CreateSopCommand{}, err
	}
	steps, err := toStepInputs(r.Steps)
	if err != nil {
		return services.CreateSopCommand{}, err
	}
	hazards, err := toHazardInputs(r.Hazards)
	if err != nil {
		return services.CreateSopCommand{}, err
	}
	return services.CreateSopCommand{
		Reference:     r.Reference,
		DepartmentID:  departmentID,
		Title:         r.Title,
		Description:   r.Description,
		IsAiGenerated: r.IsAiGenerated,
		Steps:         steps,
		Hazards:       hazards,
	}, nil
}

func (r *UpdateVersionRequest) ToCommand(sopID, versionID uuid.UUID) (services.UpdateVersionCommand, error) {
	steps, err := toStepInputs(r.Steps)
	if err != nil {
		return services.UpdateVersionCommand{}, err
	}
	hazards, err := toHazardInputs(r.Hazards)
	if err != nil {
		return services.UpdateVersionCommand{}, err
	}
	return services.UpdateVersionCommand{
		SopID:       sopID,
		VersionID:   versionID,
		Title:       r.Title,
		Description: r.Description,
		Steps:       steps,
		Hazards:     hazards,
	}, nil
}

type StepResponse struct {
	ID       string   `json:"id"`
	Position int      `json:"position"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	ImageRef string   `json:"imageRef,omitempty"`
	PpeIDs   []string `json:"ppeIds"`
}

type HazardResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ControlMeasure string `json:"controlMeasure"`
	RiskLevel      string `json:"riskLevel"`
}

type VersionResponse struct {
	ID          string           `json:"id"`
	Version     int              `json:"version"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"`
	AuthorID    *string          `json:"authorId,omitempty"`
	ApproverID  *string          `json:"approverId,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	RequestedAt *time.Time       `json:"requestedAt,omitempty"`
	ApprovedAt  *time.Time       `json:"approvedAt,omitempty"`
	Steps       []StepResponse   `json:"steps,omitempty"`
	Hazards     []HazardResponse `json:"hazards,omitempty"`
}

type SopResponse struct {
	ID            string            `json:"id"`
	Reference     string            `json:"reference"`
	DepartmentID  *string           `json:"departmentId,omitempty"`
	IsAiGenerated bool              `json:"isAiGenerated"`
	Favourite     bool              `json:"favourite"`
	CreatedAt     time.Time         `json:"createdAt"`
	Versions      []VersionResponse `json:"versions"`
}

type PpeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func uuidPtrString(v *uuid.UUID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func NewVersionResponse(v *sop.Version) VersionResponse {
	steps := make([]StepResponse, 0, len(v.Steps()))
	for _, s := range v.Steps() {
		ppeIDs := make([]string, 0, len(s.PpeIDs()))
		for _, id := range s.PpeIDs() {
			ppeIDs = append(ppeIDs, id.String())
		}
		steps = append(steps, StepResponse{
			ID:       s.ID().String(),
			Position: s.Position(),
			Title:    s.Title(),
			Text:     s.Text(),
			ImageRef: s.ImageRef(),
			PpeIDs:   ppeIDs,
		})
	}
	hazards := make([]HazardResponse, 0, len(v.Hazards()))
	for _, h := range v.Hazards() {
		hazards = append(hazards, HazardResponse{
			ID:             h.ID().String(),
			Name:           h.Name(),
			ControlMeasure: h.ControlMeasure(),
			RiskLevel:      string(h.RiskLevel()),
		})
	}
	return VersionResponse{
		ID:          v.ID().String(),
		Version:     v.Number(),
		Title:       v.Title(),
		Description: v.Description(),
		Status:      string(v.Status()),
		AuthorID:    uuidPtrString(v.AuthorID()),
		ApproverID:  uuidPtrString(v.ApproverID()),
		CreatedAt:   v.CreatedAt(),
		RequestedAt: v.RequestedAt(),
		ApprovedAt:  v.ApprovedAt(),
		Steps:       steps,
		Hazards:     hazards,
	}
}

func NewSopResponse(item *services.ListItem) SopResponse {
	s := item.Sop
	versions := make([]VersionResponse, 0, len(s.Versions()))
	for _, v := range s.Versions() {
		versions = append(versions, NewVersionResponse(v))
	}
	return SopResponse{
		ID:            s.ID().String(),
		Reference:     s.Reference(),
		DepartmentID:  uuidPtrString(s.DepartmentID()),
		IsAiGenerated: s.IsAiGenerated(),
		Favourite:     item.Favourite,
		CreatedAt:     s.CreatedAt(),
		Versions:      versions,
	}
}

func NewPpeResponse(p *ppe.Ppe) PpeResponse {
	return PpeResponse{
		ID:   p.ID().String(),
		Name: p.Name(),
		Icon: p.Icon(),
	}
}
