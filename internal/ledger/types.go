package ledger

// Workspace 工作区
type Workspace struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Folders []Folder `json:"folders,omitempty"`
}

// Folder 文件夹
type Folder struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Sheets []Sheet `json:"sheets,omitempty"`
}

// Sheet 表格,GetSheet 返回时包含列与行
type Sheet struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`
}

// Column 列定义
type Column struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Row 行
type Row struct {
	ID    int64  `json:"id"`
	Cells []Cell `json:"cells"`
}

// Cell 单元格; 数值列解码为 float64
type Cell struct {
	ColumnID int64       `json:"columnId"`
	Value    interface{} `json:"value,omitempty"`
}

// NewRow 追加行请求
type NewRow struct {
	ToBottom bool   `json:"toBottom"`
	Cells    []Cell `json:"cells"`
}

// listResponse 列表接口的分页包装
type listResponse[T any] struct {
	PageNumber int `json:"pageNumber"`
	TotalPages int `json:"totalPages"`
	Data       []T `json:"data"`
}

// addRowsResponse 追加行接口响应
type addRowsResponse struct {
	Message string `json:"message"`
	Result  []Row  `json:"result"`
}

// apiErrorBody 表格服务的错误响应
type apiErrorBody struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}
