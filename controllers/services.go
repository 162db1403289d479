package controllers

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/vnkhanh/clevercards-backend/services"
)

var (
	assembly *services.AssemblyService
	recent   *services.RecentPractice
	store    services.PersistenceGateway
	media    services.MediaGateway
)

// InitServices dựng các service dùng chung cho controllers.
// Gateway inject vào AssemblyService ở đây, controller không chạm
// trực tiếp vào storage/Gemini.
func InitServices(db *gorm.DB, rdb *redis.Client) {
	store = services.NewGormPersistence(db)
	media = services.NewSupabaseMedia()
	assembly = services.NewAssemblyService(store, media)
	recent = services.NewRecentPractice(rdb)
}
