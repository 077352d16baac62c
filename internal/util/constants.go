package util

import "strings"

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 未能从请求中取得来源信息时的占位值
const UnknownClientInfo = "unknown"

var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// ShortCode 取 UUID 前 n 位大写，用作班级加入码/测验访问码
func ShortCode(uuid string, n int) string {
	code := strings.ToUpper(strings.ReplaceAll(uuid, "-", ""))
	if len(code) > n {
		code = code[:n]
	}
	return code
}
