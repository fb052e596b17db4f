// internal/pkg/httpclient/client.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Resolver 把逻辑服务名解析为一个可用的 base URL。
// 生产环境由 Nacos 实现，测试和降级场景用静态地址表。
type Resolver interface {
	Resolve(serviceName string) (string, error)
}

// StaticResolver 是最简单的 Resolver：固定的服务名 -> 地址映射。
type StaticResolver map[string]string

func (r StaticResolver) Resolve(serviceName string) (string, error) {
	addr, ok := r[serviceName]
	if !ok {
		return "", fmt.Errorf("no static address configured for service '%s'", serviceName)
	}
	return addr, nil
}

// StatusError 表示下游服务返回了非 2xx 状态码。
// 调用方（适配器层）依赖 Code 做业务错误归类，Body 里通常有错误详情。
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("downstream returned status %d: %s", e.Code, string(e.Body))
}

// Client 是一个可追踪、可注入的 HTTP 客户端。
// 不在 http.Client 上设置 Timeout，超时完全由每次请求传入的 context 控制，
// 这样调用方可以对"检查"和"预占"两步分别设定时限。
type Client struct {
	tracer     trace.Tracer
	httpClient *http.Client
	resolver   Resolver
}

// NewClient 创建一个新的客户端实例。
func NewClient(tracer trace.Tracer, resolver Resolver) *Client {
	return &Client{
		tracer: tracer,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		resolver: resolver,
	}
}

// GetJSON 向目标服务发起 GET 请求并把 2xx 响应体解码进 out。
// 非 2xx 返回 *StatusError；网络层错误原样返回。
func (c *Client) GetJSON(ctx context.Context, serviceName, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, serviceName, path, nil, out)
}

// PostJSON 向目标服务发起 JSON POST 请求并把 2xx 响应体解码进 out。
func (c *Client) PostJSON(ctx context.Context, serviceName, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, serviceName, path, payload, out)
}

func (c *Client) doJSON(ctx context.Context, method, serviceName, path string, payload []byte, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("call-%s", serviceName), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	baseURL, err := c.resolver.Resolve(serviceName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	fullURL := baseURL + path

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span.SetAttributes(
		attribute.String("http.url", fullURL),
		attribute.String("http.method", method),
		attribute.String("peer.service", serviceName),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Code: resp.StatusCode, Body: respBody}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, statusErr.Error())
		return statusErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to decode response from %s%s: %w", serviceName, path, err)
		}
	}
	return nil
}
