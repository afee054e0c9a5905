package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAccessDecided = "access.decided"
	EventTypeSensorRetired = "sensor.retired"
)

type AccessDecidedEvent struct {
	BaseEvent
	AccessEventID int64  `json:"access_event_id"`
	SensorID      int64  `json:"sensor_id"`
	SensorCode    string `json:"sensor_code"`
	UserID        *int64 `json:"user_id,omitempty"`
	AccessType    string `json:"access_type"`
	Outcome       string `json:"outcome"`
}

func NewAccessDecidedEvent(accessEventID, sensorID int64, sensorCode string, userID *int64, accessType, outcome string) *AccessDecidedEvent {
	data := map[string]interface{}{
		"access_event_id": accessEventID,
		"sensor_id":       sensorID,
		"sensor_code":     sensorCode,
		"access_type":     accessType,
		"outcome":         outcome,
	}
	if userID != nil {
		data["user_id"] = *userID
	}
	return &AccessDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccessDecided,
			Timestamp: time.Now(),
			Data:      data,
		},
		AccessEventID: accessEventID,
		SensorID:      sensorID,
		SensorCode:    sensorCode,
		UserID:        userID,
		AccessType:    accessType,
		Outcome:       outcome,
	}
}

type SensorRetiredEvent struct {
	BaseEvent
	SensorID   int64  `json:"sensor_id"`
	SensorCode string `json:"sensor_code"`
	Status     string `json:"status"`
}

func NewSensorRetiredEvent(sensorID int64, sensorCode, status string) *SensorRetiredEvent {
	return &SensorRetiredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSensorRetired,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"sensor_id":   sensorID,
				"sensor_code": sensorCode,
				"status":      status,
			},
		},
		SensorID:   sensorID,
		SensorCode: sensorCode,
		Status:     status,
	}
}
