package ledger

import (
	"math"
	"strconv"
	"strings"
)

// AggregateResult 某任务在表格中的汇总
type AggregateResult struct {
	TotalDistance        float64 `json:"total_distance"`
	ContributingRowCount int     `json:"contributing_row_count"`
}

// SumByTaskID 汇总任务 ID 列等于 taskID 的行的里程
// 任务 ID 按字符串精确比较; 里程缺失或非数值按 0 计
func SumByTaskID(sheet *Sheet, taskID, taskIDColumn, distanceColumn string) (AggregateResult, error) {
	idx := NewColumnIndex(sheet)
	taskCol, err := idx.Require(taskIDColumn)
	if err != nil {
		return AggregateResult{}, err
	}
	distCol, err := idx.Require(distanceColumn)
	if err != nil {
		return AggregateResult{}, err
	}

	var result AggregateResult
	for _, row := range sheet.Rows {
		var id string
		var distance float64
		for _, cell := range row.Cells {
			switch cell.ColumnID {
			case taskCol:
				id = cellString(cell.Value)
			case distCol:
				distance = cellNumber(cell.Value)
			}
		}
		if id != taskID {
			continue
		}
		result.TotalDistance += distance
		result.ContributingRowCount++
	}

	return result, nil
}

// cellString 单元格的字符串形式; 数值以最短形式输出,避免大整数 ID 变成科学计数法
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// cellNumber 单元格的数值,无法解析时为 0
func cellNumber(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	default:
		return 0
	}
}
