// Package mapping 实现各协议连接器配置在 legacy 与 3.5.2 结构之间的字段映射。
// 所有函数都是纯函数，不修改入参。
package mapping

import (
	"regexp"
	"strings"
)

// SourceType MQTT 表达式的取值来源
type SourceType string

const (
	SourceMessage  SourceType = "message"
	SourceTopic    SourceType = "topic"
	SourceConstant SourceType = "constant"
)

// SourceOf 根据表达式文本推断来源：含 ${ 为消息体，含 / 为主题，否则为常量
func SourceOf(expr string) SourceType {
	if strings.Contains(expr, "${") {
		return SourceMessage
	}
	if strings.Contains(expr, "/") {
		return SourceTopic
	}
	return SourceConstant
}

// OPCSourceType OPC-UA 表达式的取值来源
type OPCSourceType string

const (
	OPCSourcePath       OPCSourceType = "path"
	OPCSourceIdentifier OPCSourceType = "identifier"
	OPCSourceConstant   OPCSourceType = "constant"
)

// OPCSourceOf 含 ${ 为节点标识，含 / 或 \ 为路径，否则为常量
func OPCSourceOf(expr string) OPCSourceType {
	if strings.Contains(expr, "${") {
		return OPCSourceIdentifier
	}
	if strings.ContainsAny(expr, `/\`) {
		return OPCSourcePath
	}
	return OPCSourceConstant
}

var nodeIdentifierRe = regexp.MustCompile(`ns=\d+;[isgb]=`)

// OPCNodeSourceOf 设备节点模式形如 ns=2;i=1 时为标识，否则为路径
func OPCNodeSourceOf(pattern string) OPCSourceType {
	if nodeIdentifierRe.MatchString(pattern) {
		return OPCSourceIdentifier
	}
	return OPCSourcePath
}
