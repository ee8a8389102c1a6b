// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/item_repository.go -destination=item_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/item_service.go -destination=item_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/database.go -destination=database_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/client_repository.go -destination=client_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/consignment_repository.go -destination=consignment_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/sale_repository.go -destination=sale_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/services/items.go -destination=pgxpool_mock.go -package=mocks PgxPool
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/consignment_service.go -destination=consignment_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/sale_service.go -destination=sale_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/client_service.go -destination=client_service_mock.go -package=mocks
