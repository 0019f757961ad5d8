package generator

// QuestionType 题型描述
// 小整数编号到自然语言风格描述的映射
type QuestionType struct {
	ID          int    // 题型编号
	Description string // 题型描述，嵌入提示词
}

// TypeCatalog 有序题型目录
// 目录顺序决定每个分块内各题型的生成顺序
type TypeCatalog []QuestionType

// DefaultCatalog 返回默认题型目录
// 编号沿用既有题库约定，并不连续
func DefaultCatalog() TypeCatalog {
	return TypeCatalog{
		{ID: 1, Description: "Case-based diagnosis from radiological features"},
		{ID: 4, Description: "Disease characteristics verification"},
		{ID: 6, Description: "Special feature identification"},
	}
}

// Lookup 按编号查找题型
func (c TypeCatalog) Lookup(id int) (QuestionType, bool) {
	for _, qt := range c {
		if qt.ID == id {
			return qt, true
		}
	}
	return QuestionType{}, false
}

// Subset 按编号列表筛选题型，保持目录原有顺序
// 空列表返回完整目录
func (c TypeCatalog) Subset(ids []int) TypeCatalog {
	if len(ids) == 0 {
		return c
	}

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var subset TypeCatalog
	for _, qt := range c {
		if wanted[qt.ID] {
			subset = append(subset, qt)
		}
	}
	return subset
}
