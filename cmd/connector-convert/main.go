// connector-convert 离线转换导出的连接器配置文件。
//
//	connector-convert -gateway 3.5.2 -in connectors.json -out converted.json
//
// 输入可以是单条连接器记录，也可以是 name → 记录 的对象（属性导出格式）。
package main

import (
	"flag"
	"io"
	"os"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/models"
)

const serviceName = "connector-convert"

func main() {
	var (
		gatewayVersion = flag.String("gateway", "3.5.2", "目标网关版本")
		inPath         = flag.String("in", "-", "输入文件，- 表示标准输入")
		outPath        = flag.String("out", "-", "输出文件，- 表示标准输出")
		logLevel       = flag.String("log-level", models.InfoLog, "日志级别")
	)
	flag.Parse()

	lc := logger.NewClient(serviceName, *logLevel)

	in, err := read(*inPath)
	if err != nil {
		lc.Errorf("read %s: %v", *inPath, err)
		os.Exit(1)
	}

	out, results, err := Convert(in, *gatewayVersion)
	if err != nil {
		lc.Errorf("convert: %v", err)
		os.Exit(1)
	}
	for _, r := range results {
		lc.Infof("%s (%s): %s", r.Name, r.Type, r.Direction)
	}

	if err := write(*outPath, out); err != nil {
		lc.Errorf("write %s: %v", *outPath, err)
		os.Exit(1)
	}
}

func read(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func write(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
