package repository

import "gorm.io/gorm"

// maxPageSize 与 handler 层的分页上限保持一致
const maxPageSize = 100

// applyPagination 应用分页参数，容错非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
