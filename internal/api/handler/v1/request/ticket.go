package request

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/qr"
)

// at least one non-space character, printable only, up to 64 characters
const labelRegexPattern = `^(?=.*\S)[^\x00-\x1F\x7F]{1,64}$`

var (
	labelExp = regexp2.MustCompile(labelRegexPattern, regexp2.None)

	errInvalidLabel = errors.New("must be 1 to 64 printable characters and not blank")
)

var isLabel = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	ok, err := labelExp.MatchString(s)
	if err != nil || !ok {
		return errInvalidLabel
	}
	return nil
})

type CreateTicketRequest struct {
	Name     string `json:"name" example:"Alice"`
	Category string `json:"category" enums:"VIP,Gold,Standard" example:"VIP"`
	Seat     string `json:"seat" example:"A1"`
}

func (req *CreateTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, isLabel),
		validation.Field(&req.Category, validation.Required, validation.In("VIP", "Gold", "Standard")),
		validation.Field(&req.Seat, validation.Required, isLabel),
	)
}

// ScanTicketRequest accepts ticketId, ticket_id or id for the ticket, and
// scannedBy or scanned_by for the agent. A raw scanned code may be sent
// instead of the id and key.
type ScanTicketRequest struct {
	TicketID  string `json:"ticketId" example:"TKT-MGT5K3X1-7Q2ZP0"`
	Key       string `json:"key"`
	ScannedBy string `json:"scannedBy" example:"Gate 1"`
	Code      string `json:"code,omitempty"`
}

func (req *ScanTicketRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		TicketIDCamel  *string `json:"ticketId"`
		TicketIDSnake  *string `json:"ticket_id"`
		ID             *string `json:"id"`
		Key            *string `json:"key"`
		ScannedByCamel *string `json:"scannedBy"`
		ScannedBySnake *string `json:"scanned_by"`
		Code           *string `json:"code"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*req = ScanTicketRequest{
		TicketID:  firstNonBlank(raw.TicketIDCamel, raw.TicketIDSnake, raw.ID),
		Key:       firstNonBlank(raw.Key),
		ScannedBy: firstNonBlank(raw.ScannedByCamel, raw.ScannedBySnake),
		Code:      firstNonBlank(raw.Code),
	}

	if req.Code != "" {
		payload := qr.Parse(req.Code)
		if req.TicketID == "" {
			req.TicketID = payload.ID
		}
		if req.Key == "" {
			req.Key = payload.Key
		}
	}

	return nil
}

func (req *ScanTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketID, validation.Required.Error("ticket id is required")),
	)
}

func firstNonBlank(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}
