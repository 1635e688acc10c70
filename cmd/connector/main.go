// Command connector 钱包连接器命令行
//
// 子命令：
//   - demo：使用模拟钱包演示发现、连接、切换账户与签名
//   - serve：启动 HTTP 控制面与事件流
//   - verify：输出钱包真实性评估
//   - version：版本信息
package main

func main() {
	Execute()
}
