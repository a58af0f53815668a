/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package bootstrap

import _ "embed"

// SetupPayload is the opaque store-setup script evaluated inside the
// workload by the administration tool. Its content is delivered byte-for-
// byte; the sequencer only guarantees transfer and retryable execution.
//
//go:embed assets/woo-setup.php
var SetupPayload string

// databaseProbeScript checks that the application's database answers. It is
// self-contained: connection parameters come from the container environment.
const databaseProbeScript = `#!/bin/sh
set -e
host="${WORDPRESS_DB_HOST%%:*}"
mysqladmin ping \
  -h"${host}" \
  -u"${WORDPRESS_DB_USER}" \
  -p"${WORDPRESS_DB_PASSWORD}" \
  --silent
`

// installWPCLIScript installs the administration tool into the execution
// unit. Safe to re-run.
const installWPCLIScript = `if ! command -v wp >/dev/null 2>&1; then
  curl -sSLo /usr/local/bin/wp https://raw.githubusercontent.com/wp-cli/builds/gh-pages/phar/wp-cli.phar
  chmod +x /usr/local/bin/wp
fi
wp --version --allow-root`
