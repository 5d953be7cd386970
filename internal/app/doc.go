// Package app composes the Tamkeen services into a running application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── submission/     # Eligibility questionnaire and test records
//	│   ├── program/        # Subsidy programs and their rule groups
//	│   ├── news/           # News articles
//	│   ├── partner/        # Partner organisations
//	│   ├── adminuser/      # Back-office accounts and sessions
//	│   └── activity/       # Activity feed entries
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces (ProgramStore, TestStore, ...)
//	│   ├── memory/         # In-memory implementation for tests and dev
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── services/           # Business logic (one package per domain)
//	├── httpapi/            # HTTP handlers and routing
//	├── system/             # Lifecycle management for long-running services
//	└── metrics/            # Prometheus collectors
//
// Services receive storage interfaces, never concrete stores. Handlers in
// httpapi call services, never stores. The realtime hub lives outside this
// tree (internal/realtime) because it is transport, not business logic.
//
// # Adding a New Domain
//
//  1. Create models in internal/app/domain/<name>/
//  2. Add a store interface to internal/app/storage/interfaces.go
//  3. Implement it in storage/memory and storage/postgres
//  4. Create the service in internal/app/services/<name>/
//  5. Wire it in application.go and expose it in httpapi
package app
