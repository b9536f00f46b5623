package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookerapp/booker-server/internal/auth"
	"github.com/bookerapp/booker-server/internal/logger"
	"github.com/bookerapp/booker-server/internal/service"
)

// ProvideServices provides the business services.
func ProvideServices(i do.Injector) (*service.Services, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	tokens := do.MustInvoke[auth.TokenIssuer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.New(storeHandle.Store, tokens, indexHandle.BookIndex, log.Logger), nil
}
