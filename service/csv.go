package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/muratkar/tracker_end/models"
	"github.com/muratkar/tracker_end/utils"
)

// CSVHeaders 导出列，顺序固定
var CSVHeaders = []string{
	"id",
	"companyName",
	"contactName",
	"city",
	"phone",
	"email",
	"status",
	"priority",
	"connectionDate",
	"messageDate",
	"visitDate",
	"notes",
	"tags",
}

// TagSeparator 标签连接符
// 注意：连接符本身不参与字段转义，标签值含竖线时往返会丢失，属已知限制
const TagSeparator = "|"

// csvEscape 字段转义：含逗号、引号或换行时加引号，内部引号翻倍
func csvEscape(value string) string {
	if strings.ContainsAny(value, ",\"\n") {
		return "\"" + strings.ReplaceAll(value, "\"", "\"\"") + "\""
	}
	return value
}

// parseCSVLine 解析单行，支持引号包裹和翻倍引号转义
func parseCSVLine(line string) []string {
	row := []string{}
	var cur strings.Builder
	inQuotes := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			row = append(row, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	row = append(row, cur.String())
	return row
}

// cellValue 按列名取出客户字段值
func cellValue(c models.Customer, header string) string {
	switch header {
	case "id":
		if c.ID == 0 {
			return ""
		}
		return strconv.FormatInt(c.ID, 10)
	case "companyName":
		return c.CompanyName
	case "contactName":
		return c.ContactName
	case "city":
		return c.City
	case "phone":
		return c.Phone
	case "email":
		return c.Email
	case "status":
		if c.Status == "" {
			return string(models.StatusConnectionSent)
		}
		return string(c.Status)
	case "priority":
		if c.Priority == "" {
			return string(models.PriorityMedium)
		}
		return string(c.Priority)
	case "connectionDate":
		return c.ConnectionDate
	case "messageDate":
		return c.MessageDate
	case "visitDate":
		return c.VisitDate
	case "notes":
		return c.Notes
	case "tags":
		return strings.Join(c.Tags, TagSeparator)
	}
	return ""
}

// EncodeCSV 将客户列表编码为CSV文本
func EncodeCSV(customers []models.Customer) string {
	lines := make([]string, 0, len(customers)+1)
	lines = append(lines, strings.Join(CSVHeaders, ","))
	for _, c := range customers {
		cells := make([]string, 0, len(CSVHeaders))
		for _, header := range CSVHeaders {
			cells = append(cells, csvEscape(cellValue(c, header)))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

// isKnownHeader 判断列名是否在识别范围内
func isKnownHeader(name string) bool {
	for _, header := range CSVHeaders {
		if header == name {
			return true
		}
	}
	return false
}

// DecodeCSV 将CSV文本解码为客户列表
// 行级容错：列数不符、未知列名、空行均不报错；完全无法识别表头时返回错误
func DecodeCSV(text string, now time.Time) ([]models.Customer, error) {
	rawLines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, utils.CreateDecodeError("CSV内容为空")
	}

	headerCells := parseCSVLine(lines[0])
	known := 0
	for _, cell := range headerCells {
		if isKnownHeader(cell) {
			known++
		}
	}
	if known == 0 {
		return nil, utils.CreateDecodeError("CSV表头无法识别")
	}

	// 仅有表头行时返回空结果
	out := make([]models.Customer, 0, len(lines)-1)
	taken := make(map[int64]bool)

	for i := 1; i < len(lines); i++ {
		cells := parseCSVLine(lines[i])
		customer := models.Customer{
			Status:      models.StatusConnectionSent,
			Priority:    models.PriorityMedium,
			Tags:        []string{},
			CreatedAt:   now,
			UpdatedAt:   now,
			ActivityLog: []models.ActivityEntry{},
		}
		for idx, headerCell := range headerCells {
			if !isKnownHeader(headerCell) {
				continue
			}
			value := ""
			if idx < len(cells) {
				value = cells[idx]
			}
			switch headerCell {
			case "id":
				if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
					customer.ID = parsed
				}
			case "companyName":
				customer.CompanyName = value
			case "contactName":
				customer.ContactName = value
			case "city":
				customer.City = value
			case "phone":
				customer.Phone = value
			case "email":
				customer.Email = value
			case "status":
				if models.IsValidStatus(value) {
					customer.Status = models.CustomerStatus(value)
				}
			case "priority":
				if models.IsValidPriority(value) {
					customer.Priority = models.Priority(value)
				}
			case "connectionDate":
				customer.ConnectionDate = value
			case "messageDate":
				customer.MessageDate = value
			case "visitDate":
				customer.VisitDate = value
			case "notes":
				customer.Notes = value
			case "tags":
				if value != "" {
					customer.Tags = models.NormalizeTags(strings.Split(value, TagSeparator))
				}
			}
		}

		// ID缺失或非法时补发新ID
		if customer.ID == 0 || taken[customer.ID] {
			customer.ID = models.NewID(now, taken)
		}
		taken[customer.ID] = true
		out = append(out, customer)
	}

	return out, nil
}
