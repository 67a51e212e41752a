// Package mission builds the mission intent document handed to the ground
// control bridge when a delivery mission is submitted. The engine only
// describes the mission; flight execution belongs to the external platform.
package mission

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"
)

// Flight parameters fixed by the delivery profile.
const (
	CruiseAltitudeM   = 20
	DeliveryAltitudeM = 8
	BatteryMinPct     = 30
	LoiterTimeoutS    = 60
	LostLinkBehavior  = "RTL"
)

// Actions is the fixed action sequence of a delivery mission.
func Actions() []string {
	return []string{"TAKEOFF", "CRUISE", "DESCEND", "DROP_OR_WINCH", "ASCEND", "RTL"}
}

// Waypoint is a mission position with altitude.
type Waypoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	AltM int     `json:"alt_m"`

	// DeliveryAltM is set only on the dropoff waypoint.
	DeliveryAltM int `json:"delivery_alt_m,omitempty"`
}

// Constraints are the hard limits the mission must respect.
type Constraints struct {
	BatteryMinPct int    `json:"battery_min_pct"`
	ServiceAreaID string `json:"service_area_id"`
}

// Safety describes contingency behavior.
type Safety struct {
	AbortRTLOnFail   bool   `json:"abort_rtl_on_fail"`
	LoiterTimeoutS   int    `json:"loiter_timeout_s"`
	LostLinkBehavior string `json:"lost_link_behavior"`
}

// Metadata carries descriptive order context for operators.
type Metadata struct {
	PayloadCategory string  `json:"payload_category"`
	PayloadWeightKg float64 `json:"payload_weight_kg"`
	Priority        string  `json:"priority"`
	CreatedAt       string  `json:"created_at"`
}

// Intent is the full mission intent document.
type Intent struct {
	IntentID string   `json:"intent_id"`
	OrderID  string   `json:"order_id"`
	DroneID  string   `json:"drone_id"`
	Pickup   Waypoint `json:"pickup"`
	Dropoff  Waypoint `json:"dropoff"`
	Actions  []string `json:"actions"`

	Constraints Constraints `json:"constraints"`
	Safety      Safety      `json:"safety"`
	Metadata    Metadata    `json:"metadata"`
}

// NewIntentID mints a mission intent id of the form mi_<32 hex chars>.
func NewIntentID() string {
	raw := uuid.New()
	return "mi_" + hex.EncodeToString(raw[:])
}

// BuildIntent composes the mission intent for an order assigned to a drone.
func BuildIntent(o *order.Order, droneID string) (Intent, error) {
	if err := o.Validate(); err != nil {
		return Intent{}, err
	}
	if droneID == "" {
		return Intent{}, errs.NewValueIsRequiredError("droneId")
	}

	return Intent{
		IntentID: NewIntentID(),
		OrderID:  o.ID().String(),
		DroneID:  droneID,
		Pickup: Waypoint{
			Lat:  o.Pickup().Lat(),
			Lng:  o.Pickup().Lng(),
			AltM: CruiseAltitudeM,
		},
		Dropoff: Waypoint{
			Lat:          o.Dropoff().Lat(),
			Lng:          o.Dropoff().Lng(),
			AltM:         CruiseAltitudeM,
			DeliveryAltM: DeliveryAltitudeM,
		},
		Actions: Actions(),
		Constraints: Constraints{
			BatteryMinPct: BatteryMinPct,
			ServiceAreaID: "default",
		},
		Safety: Safety{
			AbortRTLOnFail:   true,
			LoiterTimeoutS:   LoiterTimeoutS,
			LostLinkBehavior: LostLinkBehavior,
		},
		Metadata: Metadata{
			PayloadCategory: o.PayloadCategory(),
			PayloadWeightKg: o.PayloadWeightKg(),
			Priority:        o.Priority().String(),
			CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Validate checks the shape of an intent before publishing.
func (i Intent) Validate() error {
	if i.IntentID == "" || i.OrderID == "" || i.DroneID == "" {
		return errs.NewValueIsInvalidError("intent")
	}
	if len(i.Actions) == 0 {
		return errs.NewValueIsInvalidError("actions")
	}
	return nil
}

func (i Intent) String() string {
	return fmt.Sprintf("%s order=%s drone=%s", i.IntentID, i.OrderID, i.DroneID)
}
