package util

import (
	"strconv"
)

// QueryInt 解析整数查询参数，缺省或非法时返回 def
func QueryInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
