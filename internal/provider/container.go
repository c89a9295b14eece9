package provider

import (
	"github.com/mercato-next/internal/cache"
	"github.com/mercato-next/internal/catalog"
	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/repository"
	"github.com/mercato-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	CartRepo repository.CartRepository

	// Clients
	CatalogClient catalog.Client

	// Services
	CartService *service.CartService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{
		Config: cfg,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化外部服务客户端
	c.initClients()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	c.CartRepo = repository.NewCartRepository(models.DB)
}

func (c *Container) initClients() {
	c.CatalogClient = catalog.NewHTTPClient(c.Config.Catalog)
}

func (c *Container) initServices() {
	c.CartService = service.NewCartService(c.CartRepo, c.CatalogClient, c.Config.Cart)
}
