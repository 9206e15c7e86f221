package service

import (
	"strings"

	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/ledger"
	"github.com/sirupsen/logrus"
)

// buildRow 按列映射把表单值转换为新行
// 只写入有映射且有值的字段; 同一列只写一次; 映射的列在表格中不存在时返回 ConfigurationError
func buildRow(sheet *ledger.Sheet, mappings []config.ColumnMapping, values map[string]interface{}, log *logrus.Entry) (ledger.NewRow, error) {
	idx := ledger.NewColumnIndex(sheet)
	row := ledger.NewRow{ToBottom: true}

	mapped := make(map[string]bool, len(mappings))
	written := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		mapped[m.Field] = true
		if written[m.Column] {
			continue
		}

		v, ok := values[m.Field]
		if !ok || isBlank(v) {
			continue
		}

		colID, err := idx.Require(m.Column)
		if err != nil {
			return ledger.NewRow{}, err
		}
		row.Cells = append(row.Cells, ledger.Cell{ColumnID: colID, Value: v})
		written[m.Column] = true
	}

	for field := range values {
		if !mapped[field] {
			log.WithField("field", field).Debug("form value has no column mapping, ignored")
		}
	}

	return row, nil
}

func isBlank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
