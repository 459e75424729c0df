// Package repository define el modelo del Hub (Tenant, Heartbeat, Module) y los
// contratos de persistencia que implementan los adapters de internal/store.
//
// Toda mutación de un tenant (suscripciones, heartbeat) es read-modify-write
// atómica por tenant; el adapter elige cómo (mutex, SELECT ... FOR UPDATE,
// transacción inmediata). Los errores de dominio se comparan con errors.Is.
package repository
