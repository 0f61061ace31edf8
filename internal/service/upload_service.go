package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/metrics"
	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/storage"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	// maxImageWidth 图片超过该宽度时压缩,降低存储与带宽开销
	maxImageWidth = 1920

	// compensateTimeout 补偿删除的独立超时,不受请求上下文取消影响
	compensateTimeout = 30 * time.Second
)

// PendingFile 待上传的文件
// FileURL 非空且 Data 为空表示沿用已上传的旧文件,不再重复上传
type PendingFile struct {
	FileName       string
	ContentType    string
	Data           []byte
	FileURL        string
	FileSize       int64
	AttachmentType string
}

// AttachmentInput 上传完成后写入数据库的附件记录
type AttachmentInput struct {
	FilePath       string
	FileName       string
	AttachmentType string
	FileSize       int64
	MimeType       string
}

// UploadService 附件批量上传服务接口
type UploadService interface {
	// Run 执行批量上传,全部成功才返回附件记录,任一失败则删除本批已传对象
	Run(ctx context.Context, files []PendingFile, defaultKind string) ([]AttachmentInput, error)
}

type uploadService struct {
	store         storage.ObjectStorage
	httpClient    *http.Client
	uploadTimeout time.Duration
}

// NewUploadService 创建附件上传服务实例
func NewUploadService(store storage.ObjectStorage, uploadTimeout time.Duration) UploadService {
	if uploadTimeout <= 0 {
		uploadTimeout = 60 * time.Second
	}
	return &uploadService{
		store:         store,
		httpClient:    &http.Client{Timeout: uploadTimeout},
		uploadTimeout: uploadTimeout,
	}
}

type uploadResult struct {
	index int
	input AttachmentInput
	key   string
	err   error
}

// Run 批量上传流程:
// 1. 分离沿用旧文件与新文件
// 2. 表格文件校验,校验失败直接终止
// 3. 图片尽力压缩,失败则使用原图
// 4. 逐文件获取预签名上传地址
// 5. 并发上传并收集全部结果,不因单个失败提前终止
// 6. 全部成功则提交,否则删除本批已上传对象并汇总失败原因
func (s *uploadService) Run(ctx context.Context, files []PendingFile, defaultKind string) ([]AttachmentInput, error) {
	inputs := make([]AttachmentInput, 0, len(files))
	fresh := make([]PendingFile, 0, len(files))

	// 1. 沿用旧文件直接生成记录,不走上传
	for _, f := range files {
		kind := f.AttachmentType
		if kind == "" {
			kind = defaultKind
		}
		if f.FileURL != "" && len(f.Data) == 0 {
			inputs = append(inputs, AttachmentInput{
				FilePath:       f.FileURL,
				FileName:       f.FileName,
				AttachmentType: kind,
				FileSize:       f.FileSize,
				MimeType:       f.ContentType,
			})
			continue
		}
		f.AttachmentType = kind
		fresh = append(fresh, f)
	}
	if len(fresh) == 0 {
		return inputs, nil
	}

	// 2. 表格文件先校验再上传,避免把损坏的表格存入对象存储
	for _, f := range fresh {
		if f.AttachmentType != model.AttachmentTypeTable {
			continue
		}
		if err := validateWorkbook(f.Data); err != nil {
			logrus.WithError(err).WithField("file", f.FileName).Warn("表格文件校验失败")
			return nil, &UploadError{Failures: []FileFailure{
				{FileName: f.FileName, Reason: fmt.Sprintf("表格文件无效: %v", err)},
			}}
		}
	}

	// 3. 图片压缩,任何失败都不阻断上传
	for i := range fresh {
		if fresh[i].AttachmentType != model.AttachmentTypeImage {
			continue
		}
		if reduced, ok := reduceImage(fresh[i].Data, fresh[i].FileName); ok {
			fresh[i].Data = reduced
			fresh[i].FileSize = int64(len(reduced))
			fresh[i].ContentType = "image/jpeg"
		}
	}

	// 4-5. 并发上传,收集全部结果
	results := make([]uploadResult, len(fresh))
	var wg sync.WaitGroup
	for i, f := range fresh {
		wg.Add(1)
		go func(idx int, file PendingFile) {
			defer wg.Done()
			results[idx] = s.uploadOne(ctx, idx, file)
		}(i, f)
	}
	wg.Wait()

	// 6. 按结果分组
	var failures []FileFailure
	uploadedKeys := make([]string, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			metrics.RecordAttachmentUpload(false)
			failures = append(failures, FileFailure{FileName: fresh[r.index].FileName, Reason: r.err.Error()})
			continue
		}
		metrics.RecordAttachmentUpload(true)
		uploadedKeys = append(uploadedKeys, r.key)
		inputs = append(inputs, r.input)
	}

	if len(failures) > 0 {
		s.compensate(uploadedKeys)
		return nil, &UploadError{Failures: failures}
	}
	return inputs, nil
}

func (s *uploadService) uploadOne(ctx context.Context, idx int, f PendingFile) uploadResult {
	cred, err := s.store.SignPutURL(ctx, f.FileName, f.ContentType)
	if err != nil {
		return uploadResult{index: idx, err: fmt.Errorf("获取上传凭证失败: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, cred.UploadURL, bytes.NewReader(f.Data))
	if err != nil {
		return uploadResult{index: idx, err: err}
	}
	req.Header.Set("Content-Type", f.ContentType)
	req.ContentLength = int64(len(f.Data))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return uploadResult{index: idx, err: fmt.Errorf("上传请求失败: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return uploadResult{index: idx, err: fmt.Errorf("上传被拒绝: HTTP %d", resp.StatusCode)}
	}

	return uploadResult{
		index: idx,
		key:   cred.ObjectKey,
		input: AttachmentInput{
			FilePath:       cred.PublicURL,
			FileName:       f.FileName,
			AttachmentType: f.AttachmentType,
			FileSize:       int64(len(f.Data)),
			MimeType:       f.ContentType,
		},
	}
}

// compensate 删除本批已上传的对象
// 使用独立上下文,原请求取消后补偿仍需执行
func (s *uploadService) compensate(keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), compensateTimeout)
	defer cancel()

	if err := s.store.DeleteObjects(ctx, keys); err != nil {
		// 补偿失败会在对象存储残留孤儿对象,记录键名供人工清理
		metrics.RecordCompensationFailure()
		logrus.WithError(err).WithField("keys", keys).Error("补偿删除失败,对象存储存在孤儿对象")
		return
	}
	logrus.WithField("count", len(keys)).Info("已删除本批上传的对象")
}

// validateWorkbook 尝试以工作簿格式打开文件内容
func validateWorkbook(data []byte) error {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer wb.Close()
	if wb.SheetCount == 0 {
		return fmt.Errorf("工作簿不包含任何工作表")
	}
	return nil
}

// reduceImage 压缩图片,返回压缩后的字节与是否成功
func reduceImage(data []byte, fileName string) ([]byte, bool) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		logrus.WithError(err).WithField("file", fileName).Debug("图片解码失败,保留原文件")
		return nil, false
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		logrus.WithError(err).WithField("file", fileName).Debug("图片编码失败,保留原文件")
		return nil, false
	}
	// 压缩后反而变大则保留原文件
	if buf.Len() >= len(data) {
		return nil, false
	}
	return buf.Bytes(), true
}
