package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID заполняет пустой первичный ключ перед вставкой.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error            { assignID(&u.ID); return nil }
func (p *ProviderProfile) BeforeCreate(*gorm.DB) error { assignID(&p.ID); return nil }
func (c *CustomerProfile) BeforeCreate(*gorm.DB) error { assignID(&c.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error        { assignID(&c.ID); return nil }
func (l *Location) BeforeCreate(*gorm.DB) error        { assignID(&l.ID); return nil }
func (s *Service) BeforeCreate(*gorm.DB) error         { assignID(&s.ID); return nil }
func (b *Booking) BeforeCreate(*gorm.DB) error         { assignID(&b.ID); return nil }
func (r *Review) BeforeCreate(*gorm.DB) error          { assignID(&r.ID); return nil }
func (n *Notification) BeforeCreate(*gorm.DB) error    { assignID(&n.ID); return nil }
func (e *Event) BeforeCreate(*gorm.DB) error           { assignID(&e.ID); return nil }
