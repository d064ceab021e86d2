package service

import "regexp"

// 算法服务返回的本服务路径形式：/api/poster/<id>/image
var legacyPosterImagePath = regexp.MustCompile(`^/api/poster/([^/]+)/image$`)

const canonicalPosterImagePrefix = "/api/poster/image/"

// CanonicalPosterURL 将 /api/poster/<id>/image 改写为 /api/poster/image/<id>，
// 其他 URL（包括外部绝对地址）原样返回。幂等。
func CanonicalPosterURL(u string) string {
	m := legacyPosterImagePath.FindStringSubmatch(u)
	if m == nil {
		return u
	}
	return canonicalPosterImagePrefix + m[1]
}
