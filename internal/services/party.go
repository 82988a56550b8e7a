package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/rohits-web03/escapegame/internal/utils"
	"github.com/skip2/go-qrcode"
)

// Epoch values below this are seconds, anything else is milliseconds.
const millisecondThreshold = 1e12

// maxEndTimeMillis is the last millisecond of year 9999.
var maxEndTimeMillis = float64(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli() - 1)

const qrSize = 320

type PartyService struct {
	store       repositories.Store
	newCode     utils.CodeGenerator
	now         func() time.Time
	joinBaseURL string
}

// NewPartyService builds the service. joinBaseURL is the frontend origin that
// party QR codes point at.
func NewPartyService(store repositories.Store, joinBaseURL string) *PartyService {
	return &PartyService{
		store:       store,
		newCode:     utils.NewPartyCode,
		now:         time.Now,
		joinBaseURL: strings.TrimRight(joinBaseURL, "/"),
	}
}

func (s *PartyService) WithCodeGenerator(gen utils.CodeGenerator) *PartyService {
	s.newCode = gen
	return s
}

func (s *PartyService) WithClock(now func() time.Time) *PartyService {
	s.now = now
	return s
}

func (s *PartyService) CreateParty(ctx context.Context, adminUserID uint) (*models.Party, error) {
	code, err := uniqueCode(ctx, s.newCode, s.store.PartyCodeExists)
	if err != nil {
		return nil, err
	}
	party := &models.Party{
		Code:        code,
		AdminUserID: adminUserID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateParty(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

// StartParty sets the party's end time. endTime is whatever the client sent:
// a JSON number or a numeric string, in epoch seconds or milliseconds.
func (s *PartyService) StartParty(ctx context.Context, partyID uint, endTime any) (*models.Party, error) {
	end, err := ParseEndTime(endTime)
	if err != nil {
		return nil, err
	}
	party, err := s.store.GetParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	party.EndTime = &end
	if err := s.store.SavePartyEndTime(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

func (s *PartyService) GetParty(ctx context.Context, id uint) (*models.Party, error) {
	return s.store.GetParty(ctx, id)
}

// GetPartyByCode looks a party up by its join code, ignoring case.
func (s *PartyService) GetPartyByCode(ctx context.Context, code string) (*models.Party, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.Validation("party code is required")
	}
	return s.store.GetPartyByCode(ctx, code)
}

// JoinURL is the frontend page a player opens to join the party.
func (s *PartyService) JoinURL(code string) string {
	return s.joinBaseURL + "/join/" + code
}

// QRCode renders the party's join URL as a PNG.
func (s *PartyService) QRCode(ctx context.Context, code string) ([]byte, error) {
	party, err := s.GetPartyByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(s.JoinURL(party.Code), qrcode.Medium, qrSize)
	if err != nil {
		return nil, apperr.Internal(err, "qr generation failed")
	}
	return png, nil
}

// ParseEndTime converts a client-supplied epoch value into a UTC time.
func ParseEndTime(v any) (time.Time, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return time.Time{}, apperr.Validation("endTime must be a number")
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return time.Time{}, apperr.Validation("endTime must be a number")
		}
		f = n
	default:
		return time.Time{}, apperr.Validation("endTime must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return time.Time{}, apperr.Validation("endTime must be a positive number")
	}

	ms := f
	if ms < millisecondThreshold {
		ms *= 1000
	}
	if ms > maxEndTimeMillis {
		return time.Time{}, apperr.Validation("endTime is out of range")
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
