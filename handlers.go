package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/models"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/models/reports"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/whatsapp"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// respondError maps model-layer sentinels onto HTTP statuses. Ownership
// mismatches surface as 404 so foreign rows stay indistinguishable from
// missing ones.
func respondError(c *gin.Context, funcName string, err error) {
	switch {
	case errors.Is(err, utils.ErrorUnauthorized), errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorInvalidAmount), errors.Is(err, utils.ErrorInvalidOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		config.LogError(config.GetLogger(), "main", funcName, "request failed", c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindError reports a request-body binding failure, surfacing per-field
// rules when the failure came from struct validation.
func bindError(c *gin.Context, err error) {
	if fields := utils.ProcessValidationErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func loginHandler(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	user, token, err := models.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func createSaleHandler(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	sale, err := models.CreateSale(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createSaleHandler", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func mySalesHandler(c *gin.Context) {
	rows, err := reports.GetMySalesRows(c.Request.Context(), c.Query("sort_by"), c.Query("sort_dir"))
	if err != nil {
		respondError(c, "mySalesHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": rows})
}

func nextSequenceNoHandler(c *gin.Context) {
	next, err := models.NextSequenceNo(c.Request.Context())
	if err != nil {
		respondError(c, "nextSequenceNoHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"next_s_no": next})
}

func getSaleHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getSaleHandler", err)
		return
	}
	history, paymentsTotal, err := models.PaymentHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sale":           sale,
		"payments":       history,
		"payments_total": paymentsTotal,
	})
}

func updateSaleHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	sale, err := models.UpdateSale(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func deleteSaleHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := models.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, "deleteSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func paymentHistoryHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	history, total, err := models.PaymentHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, "paymentHistoryHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": history, "payments_total": total})
}

func addPaymentHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	sale, err := models.AddPayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "addPaymentHandler", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func mySalesExportHandler(c *gin.Context) {
	username, _ := utils.GetUsernameFromContext(c.Request.Context())
	rows, err := reports.GetMySalesRows(c.Request.Context(), c.Query("sort_by"), c.Query("sort_dir"))
	if err != nil {
		respondError(c, "mySalesExportHandler", err)
		return
	}
	data, err := reports.ExportCSV(rows)
	if err != nil {
		respondError(c, "mySalesExportHandler", err)
		return
	}
	filename := fmt.Sprintf("%s_my_sales_%s.csv", username, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func dashboardFilter(c *gin.Context) *reports.DashboardFilter {
	year := c.Query("year")
	if year == "" {
		year = strconv.Itoa(time.Now().Year())
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	return &reports.DashboardFilter{
		Year:           year,
		Month:          c.Query("month"),
		CrmName:        c.Query("crm_name"),
		SalePersonName: c.Query("sale_person_name"),
		SpgPraneeth:    c.Query("spg_praneeth"),
		TypeOfSale:     c.Query("type_of_sale"),
		SortBy:         c.Query("sort_by"),
		SortDir:        c.Query("sort_dir"),
		Limit:          limit,
	}
}

func dashboardHandler(c *gin.Context) {
	rows, err := reports.GetDashboardRows(c.Request.Context(), dashboardFilter(c))
	if err != nil {
		respondError(c, "dashboardHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": rows})
}

func dashboardFiltersHandler(c *gin.Context) {
	crms, salesPeople, err := reports.FilterOptions(c.Request.Context())
	if err != nil {
		respondError(c, "dashboardFiltersHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"crm_names": crms, "sale_person_names": salesPeople})
}

func adminExportCSVHandler(c *gin.Context) {
	rows, err := reports.GetExportRows(c.Request.Context(), dashboardFilter(c))
	if err != nil {
		respondError(c, "adminExportCSVHandler", err)
		return
	}
	data, err := reports.ExportCSV(rows)
	if err != nil {
		respondError(c, "adminExportCSVHandler", err)
		return
	}
	filename := fmt.Sprintf("admin_dashboard_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func adminExportXLSXHandler(c *gin.Context) {
	rows, err := reports.GetExportRows(c.Request.Context(), dashboardFilter(c))
	if err != nil {
		respondError(c, "adminExportXLSXHandler", err)
		return
	}
	data, err := reports.ExportXLSX(rows)
	if err != nil {
		respondError(c, "adminExportXLSXHandler", err)
		return
	}
	filename := fmt.Sprintf("admin_dashboard_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// sendReportWhatsappHandler builds the filtered XLSX export and delivers it
// to the given recipient as a document message.
func sendReportWhatsappHandler(c *gin.Context) {
	var input struct {
		To string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	to := whatsapp.SanitizeNumber(input.To)
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient number"})
		return
	}

	client, err := whatsapp.NewClientFromEnv()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := reports.GetExportRows(c.Request.Context(), dashboardFilter(c))
	if err != nil {
		respondError(c, "sendReportWhatsappHandler", err)
		return
	}
	data, err := reports.ExportXLSX(rows)
	if err != nil {
		respondError(c, "sendReportWhatsappHandler", err)
		return
	}

	filename := fmt.Sprintf("dashboard_%s.xlsx", time.Now().Format("20060102_150405"))
	mediaID, err := client.UploadMedia(c.Request.Context(), filename, data)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	messageID, err := client.SendDocument(c.Request.Context(), to, mediaID, filename)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": messageID, "rows": len(rows)})
}

func sendTextWhatsappHandler(c *gin.Context) {
	var input struct {
		To   string `json:"to" binding:"required"`
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	to := whatsapp.SanitizeNumber(input.To)
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient number"})
		return
	}
	client, err := whatsapp.NewClientFromEnv()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	messageID, err := client.SendText(c.Request.Context(), to, input.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": messageID})
}

func listUsersHandler(c *gin.Context) {
	users, err := models.GetUsers(c.Request.Context())
	if err != nil {
		respondError(c, "listUsersHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createUserHandler", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func updateUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.UpdateUser
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	user, err := models.UpdateUserAccount(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateUserHandler", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func deleteUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := models.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, "deleteUserHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func optionsHandler(c *gin.Context) {
	values, err := models.GetOptions(c.Request.Context(), c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": values})
}

func addOptionHandler(c *gin.Context) {
	var input struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	if err := models.AddOption(c.Request.Context(), c.Param("kind"), input.Value); err != nil {
		respondError(c, "addOptionHandler", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": input.Value})
}

func deleteOptionHandler(c *gin.Context) {
	if err := models.DeleteOption(c.Request.Context(), c.Param("kind"), c.Param("value")); err != nil {
		respondError(c, "deleteOptionHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func salesPeopleHandler(c *gin.Context) {
	people, err := models.GetSalesPeople(c.Request.Context())
	if err != nil {
		respondError(c, "salesPeopleHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales_people": people})
}

func salesPeopleNamesHandler(c *gin.Context) {
	names, err := models.GetSalesPeopleNames(c.Request.Context())
	if err != nil {
		respondError(c, "salesPeopleNamesHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

func getSalesPersonHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	person, err := models.GetSalesPerson(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getSalesPersonHandler", err)
		return
	}
	c.JSON(http.StatusOK, person)
}

// Sales-person create/update arrive as multipart forms so the optional photo
// can ride along with the text fields.
func salesPersonInput(c *gin.Context) *models.NewSalesPerson {
	return &models.NewSalesPerson{
		FullName: c.PostForm("full_name"),
		Phone:    c.PostForm("phone"),
		Email:    c.PostForm("email"),
		Address:  c.PostForm("address"),
		Title:    c.PostForm("title"),
	}
}

func createSalesPersonHandler(c *gin.Context) {
	input := salesPersonInput(c)
	if input.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name is required"})
		return
	}
	photoPath, err := savePhotoUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	person, err := models.CreateSalesPerson(c.Request.Context(), input, photoPath)
	if err != nil {
		respondError(c, "createSalesPersonHandler", err)
		return
	}
	c.JSON(http.StatusCreated, person)
}

func updateSalesPersonHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	input := salesPersonInput(c)
	if input.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name is required"})
		return
	}
	photoPath, err := savePhotoUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	person, err := models.UpdateSalesPerson(c.Request.Context(), id, input, photoPath)
	if err != nil {
		respondError(c, "updateSalesPersonHandler", err)
		return
	}
	c.JSON(http.StatusOK, person)
}

func deleteSalesPersonHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := models.DeleteSalesPerson(c.Request.Context(), id); err != nil {
		respondError(c, "deleteSalesPersonHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
