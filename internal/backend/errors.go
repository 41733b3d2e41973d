// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import "errors"

var errEmptyToken = errors.New("backend: login response carried no token")
