package database

// Storage defines the interface the HTTP layer uses to reach the
// persistence backend.
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	GetDB() interface{} // Returns *gorm.DB
}
