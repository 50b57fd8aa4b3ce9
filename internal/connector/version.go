package connector

import (
	"strconv"
	"strings"
)

const (
	// VersionCurrent 当前配置结构对应的网关版本
	VersionCurrent = "3.5.2"
	// VersionLegacy 旧配置结构的版本标记
	VersionLegacy = "legacy"
)

// ParseVersion 去掉点号后按十进制解析，"3.5.2" → 352。
// legacy、空串或无法解析时返回 0。
// 注意 "3.11" 与 "3.1.1" 都得到 311。
func ParseVersion(v string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(v), ".", ""))
	if err != nil {
		return 0
	}
	return n
}
