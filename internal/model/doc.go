// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the catalog entities exchanged with the shop
// backend.
//
// # Key Types
//
//   - User: the authenticated administrator
//   - Product: a catalog item, priced in minor units
//   - Category: a product grouping
//   - DashboardStats: summary counters shown after login
//
// Prices are integers in cents; use Money to render them.
package model
