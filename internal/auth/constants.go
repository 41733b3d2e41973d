// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// minPasswordLength mirrors the backend's registration rule.
const minPasswordLength = 6
