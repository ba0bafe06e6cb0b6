// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/settlement_service.go -destination=settlement_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/settlement_repository.go -destination=settlement_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/stock_repository.go -destination=stock_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/fiscal_gateway.go -destination=fiscal_gateway_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/directory.go -destination=directory_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
