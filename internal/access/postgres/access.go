package postgres

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/rfsolutions/access-management/internal/access"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(e *access.Event) error {
	return r.db.Create(e).Error
}

type historyRow struct {
	ID         int64          `gorm:"column:id_evento"`
	SensorCode string         `gorm:"column:codigo_sensor"`
	UserID     sql.NullInt64  `gorm:"column:id_usuario"`
	UserName   sql.NullString `gorm:"column:user_name"`
	EventType  string         `gorm:"column:tipo_evento"`
	OccurredAt time.Time      `gorm:"column:fecha_evento"`
	Outcome    string         `gorm:"column:resultado"`
}

func (r *Repository) HistoryByDepartment(departmentID int64, limit int) ([]*access.HistoryEntry, error) {
	var rows []historyRow
	err := r.db.Raw(`
		SELECT e.id_evento,
		       s.codigo_sensor,
		       e.id_usuario,
		       u.name || ' ' || u.last_name AS user_name,
		       e.tipo_evento,
		       e.fecha_evento,
		       e.resultado
		FROM eventos_acceso e
		JOIN sensores s ON s.id_sensor = e.id_sensor
		LEFT JOIN users u ON u.id = e.id_usuario
		WHERE s.id_departamento = ?
		ORDER BY e.fecha_evento DESC
		LIMIT ?`, departmentID, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*access.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := &access.HistoryEntry{
			ID:         row.ID,
			SensorCode: row.SensorCode,
			EventType:  row.EventType,
			OccurredAt: row.OccurredAt,
			Outcome:    access.Outcome(row.Outcome),
		}
		if row.UserID.Valid {
			id := row.UserID.Int64
			entry.UserID = &id
		}
		if row.UserName.Valid {
			name := row.UserName.String
			entry.UserName = &name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
