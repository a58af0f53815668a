/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package main

import (
	"context"

	"github.com/storeforge/storeforge/pkg/server"
)

func main() {
	err := server.InitServer(context.Background())
	if err != nil {
		panic(err)
	}
}
